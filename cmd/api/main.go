package main

import (
	"holdingsbuilder/cmd"
	"log"
)

func main() {
	apiHandler, port, err := cmd.InitializeDependencies()
	if err != nil {
		log.Fatal(err)
	}
	defer cmd.CloseDependencies(apiHandler)

	err = apiHandler.StartApi(port)
	if err != nil {
		log.Fatal(err)
	}
}
