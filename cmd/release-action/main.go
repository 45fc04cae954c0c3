// Command release-action builds an Electron app and optionally publishes it.
package main

import "github.com/oshokin/electron-release/cmd/release-action/cmd"

func main() {
	cmd.Execute()
}
