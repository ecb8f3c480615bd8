package main

import (
	"fmt"
	"os"

	"github.com/JoaquinAb/web-alquiler/internal/service"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "uso: genhash <contraseña>")
		os.Exit(2)
	}
	h, err := service.HashPassword(os.Args[1])
	if err != nil {
		panic(err)
	}
	fmt.Println(h)
}
