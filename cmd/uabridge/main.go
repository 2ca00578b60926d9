package main

import (
	"fmt"

	"github.com/amine-amaach/simulators/ioTSensorsUaBridge/internal/cli"
)

const cyan uint8 = 36

func main() {
	version := "v1.0.0"
	website := "https://www.linkedin.com/in/amine-amaach/"
	banner := `
 ___    _____   ____                                   _   _    _    ____       _     _
|_ _|__|_   _| / ___|  ___ _ __  ___  ___  _ __ ___   | | | |  / \  | __ ) _ __(_) __| | __ _  ___
 | |/ _ \| |   \___ \ / _ \ '_ \/ __|/ _ \| '__/ __|  | | | | / _ \ |  _ \| '__| |/ _' |/ _' |/ _ \
 | | (_) | |    ___) |  __/ | | \__ \ (_) | |  \__ \  | |_| |/ ___ \| |_) | |  | | (_| | (_| |  __/
|___\___/|_|   |____/ \___|_| |_|___/\___/|_|  |___/   \___//_/   \_\____/|_|  |_|\__,_|\__, |\___|
IoT Sensors Data Over OPCUA, bridged                                                     |___/ %s
______________________________________________________________________________O/__________
%s                                     O\
`
	fmt.Printf("\x1b[%dm%s\x1b[0m\n", cyan, fmt.Sprintf(banner, version, website))

	cli.Run()
}
