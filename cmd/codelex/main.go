// Command codelex turns Kannada programming instructions into Python programs.
package main

func main() {
	execute()
}
