package board

import (
	"fmt"
	"strings"

	"github.com/fivetwenty-io/shadow-nav/internal/constants"
)

// ParseWallets reads one wallet per non-blank line. Accepted forms are
//
//	Client, Label, 0xAddress
//	Label, 0xAddress
//	0xAddress
//
// Missing labels become "Wallet N" where N counts parsed lines from 1, and
// missing clients become "Unassigned".
func ParseWallets(text string) []Wallet {
	var wallets []Wallet

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		parts := strings.Split(line, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}

		var wallet Wallet

		switch {
		case len(parts) >= 3:
			wallet = Wallet{Client: parts[0], Label: parts[1], Address: parts[2]}
		case len(parts) == 2:
			wallet = Wallet{Label: parts[0], Address: parts[1]}
		default:
			wallet = Wallet{Address: parts[0]}
		}

		if wallet.Label == "" {
			wallet.Label = fmt.Sprintf("%s %d", constants.WalletLabelPrefix, len(wallets)+1)
		}

		if wallet.Client == "" {
			wallet.Client = constants.UnassignedClient
		}

		wallets = append(wallets, wallet)
	}

	return wallets
}
