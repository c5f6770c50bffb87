// inventoryctl is the command-line interface for the raw material and product inventories.
package main

import "github.com/abgdnv/inventory/internal/cli"

func main() {
	cli.Execute()
}
