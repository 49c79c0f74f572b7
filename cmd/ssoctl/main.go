package main

import "github.com/emontalvo610/sso-oauth/cmd/ssoctl/cmd"

func main() {
	cmd.Execute()
}
