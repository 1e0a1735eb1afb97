// The main package for the course-harvester executable.
package main

import (
	"github.com/bkassahun/course-harvester/cmd"
)

// main defers all execution to the Cobra CLI library.
func main() {
	cmd.Execute()
}
