package ledger

import (
	"fmt"
	"strings"
)

const (
	LearningProgressStruct  = "LearningProgress"
	CourseCertificateStruct = "CourseCertificate"

	placeholderPackageID = "0x_YOUR_PACKAGE_ID_HERE"
)

// Config identifies the deployed Move package the adapter talks to.
type Config struct {
	Network     string
	PackageID   string
	ModuleName  string
	ExplorerURL string
}

// Configured reports whether a real package id has been supplied.
func (c Config) Configured() bool {
	return c.PackageID != "" && c.PackageID != placeholderPackageID
}

// Target returns the fully qualified name of a function in the package module.
func (c Config) Target(function string) string {
	return fmt.Sprintf("%s::%s::%s", c.PackageID, c.ModuleName, function)
}

// StructType returns the fully qualified name of a struct in the package module.
func (c Config) StructType(name string) string {
	return fmt.Sprintf("%s::%s::%s", c.PackageID, c.ModuleName, name)
}

func (c Config) Explorer() ExplorerURLs {
	return ExplorerURLs{base: strings.TrimRight(c.ExplorerURL, "/"), network: c.Network, packageID: c.PackageID}
}

// FullnodeURL returns the public JSON-RPC endpoint for a named network.
func FullnodeURL(network string) (string, error) {
	switch network {
	case "mainnet":
		return "https://api.mainnet.iota.cafe", nil
	case "testnet":
		return "https://api.testnet.iota.cafe", nil
	case "devnet":
		return "https://api.devnet.iota.cafe", nil
	case "localnet":
		return "http://127.0.0.1:9000", nil
	}
	return "", fmt.Errorf("unknown network: %q", network)
}

type ExplorerURLs struct {
	base      string
	network   string
	packageID string
}

func (e ExplorerURLs) Transaction(digest string) string {
	return fmt.Sprintf("%s/txblock/%s?network=%s", e.base, digest, e.network)
}

func (e ExplorerURLs) Object(objectID string) string {
	return fmt.Sprintf("%s/object/%s?network=%s", e.base, objectID, e.network)
}

func (e ExplorerURLs) Address(address string) string {
	return fmt.Sprintf("%s/address/%s?network=%s", e.base, address, e.network)
}

func (e ExplorerURLs) Package() string {
	return e.Object(e.packageID)
}
