// Command todo serves the todo api and runs a demonstration of its life cycle.
package main

func main() {
	Execute()
}
