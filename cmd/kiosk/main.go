// Kiosk daemon - owns the camera, serves the kiosk page and sends snapped
// frames for face recognition
package main

import "github.com/GriffinCanCode/facekiosk/internal/cli"

func main() {
	cli.Execute()
}
