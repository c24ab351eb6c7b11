// Command propmigrate migrates the plain properties of Gradle tasks to the
// Provider API, rewriting their declarations and every call to their setters.
package main

func main() {
	Execute()
}
