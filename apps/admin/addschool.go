package main

import (
	"fmt"

	"github.com/trezcool/shule/core/school"
)

func (cli *commandLine) addSchool(name string) error {
	sch, err := cli.schoolSvc.Create(school.NewSchool{Name: name})
	if err != nil {
		return err
	}
	fmt.Printf("school %q registered with id %s\n", sch.Name, sch.ID)
	return nil
}
