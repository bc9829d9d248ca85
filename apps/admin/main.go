package main

import (
	"log"
	"os"

	"github.com/trezcool/campus/storage/database/inmem"
	"github.com/trezcool/campus/storage/fixtures"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stderr, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	// set up store
	seed, err := fixtures.Load()
	errAndDie(err)
	db := inmemdb.Open(seed)

	// start CLI
	cli := commandLine{
		out:     os.Stdout,
		usrRepo: inmemdb.NewUserRepository(db),
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
