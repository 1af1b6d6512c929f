// Command advisor answers questions about a university's degree programmes.
package main

import (
	"github.com/campusware/advisor/internal/adapters/driving/cli"
)

func main() {
	cli.Execute()
}
