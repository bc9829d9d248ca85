// Package fixtures holds the seed collections the store starts from.
package fixtures

import (
	"embed"
	"encoding/json"
	"path"

	"github.com/pkg/errors"

	"github.com/trezcool/campus/core/attendance"
	"github.com/trezcool/campus/core/audit"
	"github.com/trezcool/campus/core/course"
	"github.com/trezcool/campus/core/kpi"
	"github.com/trezcool/campus/core/leave"
	"github.com/trezcool/campus/core/message"
	"github.com/trezcool/campus/core/user"
)

//go:embed data/*.json
var dataFS embed.FS

// Seed is a fresh copy of every collection. Messages, leaves and audits are newest first.
type Seed struct {
	Users       []user.User
	Courses     []course.Course
	Enrollments []course.Enrollment
	Messages    []message.Message
	Attendance  []attendance.Record
	Leaves      []leave.LeaveRequest
	KPIs        []kpi.KPI
	Audits      []audit.AuditLog
}

// seedUser carries the dev password of a fixture user, hashed on load.
type seedUser struct {
	user.User
	Password string `json:"password"`
}

func decode(name string, v interface{}) error {
	data, err := dataFS.ReadFile(path.Join("data", name))
	if err != nil {
		return errors.Wrap(err, "reading "+name)
	}
	return errors.Wrap(json.Unmarshal(data, v), "decoding "+name)
}

// Load decodes the embedded seed. Every call returns independent copies.
func Load() (*Seed, error) {
	var (
		seed  Seed
		users []seedUser
	)
	if err := decode("users.json", &users); err != nil {
		return nil, err
	}
	seed.Users = make([]user.User, 0, len(users))
	for _, su := range users {
		usr := su.User
		if su.Password != "" {
			if err := usr.SetPassword(su.Password); err != nil {
				return nil, errors.Wrap(err, "hashing password of "+usr.ID)
			}
		}
		seed.Users = append(seed.Users, usr)
	}

	collections := []struct {
		file string
		dst  interface{}
	}{
		{"courses.json", &seed.Courses},
		{"enrollments.json", &seed.Enrollments},
		{"messages.json", &seed.Messages},
		{"attendance.json", &seed.Attendance},
		{"leaves.json", &seed.Leaves},
		{"kpi.json", &seed.KPIs},
		{"audits.json", &seed.Audits},
	}
	for _, c := range collections {
		if err := decode(c.file, c.dst); err != nil {
			return nil, err
		}
	}
	return &seed, nil
}

// MustLoad is like Load but panics on error.
func MustLoad() *Seed {
	seed, err := Load()
	if err != nil {
		panic(err)
	}
	return seed
}
