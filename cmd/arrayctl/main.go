// Command arrayctl inspects and edits array files.
package main

func main() {
	execute()
}
