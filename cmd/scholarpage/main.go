// Command scholarpage serves, builds and maintains an academic homepage.
package main

func main() {
	exitOnError(Execute())
}
