package main

import (
	"github.com/trezcool/shule/core/user"
)

func (cli *commandLine) resetPassword(schoolID, uname, pwd string) error {
	if err := user.ValidatePassword(pwd, uname); err != nil {
		return err
	}
	return cli.planSvc.SetTeacherPassword(schoolID, uname, pwd)
}
