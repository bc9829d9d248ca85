package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"syscall"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"

	"github.com/trezcool/campus/core/user"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	out     io.Writer
	usrRepo user.Repository
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  roles [-user ID|EMAIL] - print the role permissions, or the permissions of a user")
	fmt.Fprintln(cli.out, "  hashpassword           - print the bcrypt hash of a password")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	rolesCmd := flag.NewFlagSet("roles", flag.ContinueOnError)
	rolesCmd.SetOutput(cli.out)
	rolesUser := rolesCmd.String("user", "", "The user's ID or email.")

	hashPasswordCmd := flag.NewFlagSet("hashpassword", flag.ContinueOnError)
	hashPasswordCmd.SetOutput(cli.out)

	switch args[1] {
	case "roles":
		if err := rolesCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *rolesUser != "" {
			return cli.userPermissions(*rolesUser)
		}
		cli.roles()
		return nil
	case "hashpassword":
		if err := hashPasswordCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		fmt.Fprint(cli.out, "Enter password:")
		pwd, err := readPasswordFunc(int(syscall.Stdin))
		fmt.Fprintln(cli.out)
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			hashPasswordCmd.Usage()
			return errHelp
		}
		return cli.hashPassword(pwd)
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) roles() {
	for _, role := range user.AllRoles {
		fmt.Fprintf(cli.out, "%-10s %s\n", role, strings.Join(user.RolePermissions[role], ", "))
	}
}

func (cli *commandLine) userPermissions(login string) error {
	usr, err := cli.usrRepo.FindUser(context.Background(), user.FindFilter{Login: login})
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "%s (%s) [%s]\n", usr.Name, usr.ID, strings.Join(usr.Roles, ", "))
	fmt.Fprintln(cli.out, strings.Join(usr.Permissions(), ", "))
	return nil
}

func (cli *commandLine) hashPassword(pwd []byte) error {
	hash, err := bcrypt.GenerateFromPassword(pwd, bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	fmt.Fprintln(cli.out, string(hash))
	return nil
}
