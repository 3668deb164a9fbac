package main

import "github.com/manifest-network/powchain/cmd/powchain"

func main() {
	powchain.Execute()
}
