// Command derive-address prints the custody (open-orders) account and
// per-market init authority the gateway will derive for a market/owner pair,
// without touching the venue. Useful for pre-funding and debugging.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/permlabs/dexgate/pkg/solana"
)

func main() {
	program := flag.String("program", "", "gateway program id (base58)")
	market := flag.String("market", "", "market address (base58)")
	owner := flag.String("owner", "", "account owner address (base58, optional)")
	flag.Parse()

	if *program == "" || *market == "" {
		fmt.Fprintln(os.Stderr, "usage: derive-address -program <base58> -market <base58> [-owner <base58>]")
		os.Exit(2)
	}

	programID, err := solana.AddressFromBase58(*program)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid program id: %v\n", err)
		os.Exit(1)
	}
	marketAddr, err := solana.AddressFromBase58(*market)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid market: %v\n", err)
		os.Exit(1)
	}

	initAuthority, bumpInit := solana.FindProgramAddress(
		[][]byte{[]byte("open-orders-init"), marketAddr.Bytes()}, programID)
	fmt.Printf("Init Authority: %s (bump %d)\n", initAuthority, bumpInit)

	if *owner != "" {
		ownerAddr, err := solana.AddressFromBase58(*owner)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid owner: %v\n", err)
			os.Exit(1)
		}
		openOrders, bump := solana.FindProgramAddress(
			[][]byte{[]byte("open-orders"), marketAddr.Bytes(), ownerAddr.Bytes()}, programID)
		fmt.Printf("Open Orders:    %s (bump %d)\n", openOrders, bump)
	}
}
