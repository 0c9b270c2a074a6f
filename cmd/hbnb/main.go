// Command hbnb runs the hbnb object store console.
package main

import "github.com/Zytronium/atlas-airbnb-clone/internal/cli"

func main() {
	cli.Execute()
}
