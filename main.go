package main

import "github.com/edgeflare/ogcapi/cmd/ogcapi"

func main() {
	ogcapi.Main()
}
