package main

import (
	"fmt"
	"os"
)

const bannerArt = `
   _____ _            ____
  / ____(_)           / __ \
 | |     _ _ __   ___| |  | |_ __ __ _
 | |    | | '_ \ / _ \ |  | | '__/ _' |
 | |____| | | | |  __/ |__| | | | (_| |
  \_____|_|_| |_|\___|\____/|_|  \__, |
                                   __/ |
                                  |___/
`

func main() {
	fmt.Println(bannerArt)
	fmt.Println("  Media library organizer")
	fmt.Println()
	os.Exit(Execute())
}
