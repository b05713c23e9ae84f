package main

import (
	"fmt"

	echoapi "github.com/ahmedtelkodsh/geniussmart/apps/api/echo"
	"github.com/ahmedtelkodsh/geniussmart/core"
)

// token prints a signed API token for the given user.
func (cli *commandLine) token(sub, name, email, role string) error {
	role = core.CleanString(role, true /* lower */)
	claims := echoapi.NewClaims(cli.conf, core.CleanString(sub), core.CleanString(name), core.CleanString(email, true /* lower */), role)
	token, err := echoapi.GenerateToken(claims, cli.conf.SecretKey)
	if err != nil {
		return err
	}
	fmt.Fprintln(cli.out, token)
	return nil
}
