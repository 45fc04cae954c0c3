// Command app-shell serves the desktop app content and keeps it up to date.
package main

import "github.com/oshokin/electron-release/cmd/app-shell/cmd"

func main() {
	cmd.Execute()
}
