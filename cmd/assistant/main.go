package main

import "github.com/eleven-am/screen-assistant/internal/bootstrap"

func main() {
	bootstrap.Run()
}
