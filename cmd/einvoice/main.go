// Comando einvoice: generación y revisión de facturas híbridas desde la terminal.
//
//	einvoice assemble --id <uuid> [--reissue]
//	einvoice batch --year 2025 --month 2
//	einvoice xml --id <uuid>
//	einvoice inspect factura.pdf
package main

import "os"

func main() {
	os.Exit(execute())
}
