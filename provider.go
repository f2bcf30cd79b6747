package rates

import (
	"fmt"
	"strings"
)

type Provider string

const (
	PrivatBankProvider Provider = "PrivatBank"
	NBUProvider        Provider = "NBU"
	EmptyProvider      Provider = ""
)

func ConvertToProviderFromString(str string) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(str)) {
	case "privatbank":
		return PrivatBankProvider, nil
	case "nbu":
		return NBUProvider, nil
	}

	return EmptyProvider, fmt.Errorf("value %s is not valid Provider", str)
}

func (p *Provider) UnmarshalText(text []byte) error {
	provider, err := ConvertToProviderFromString(string(text))
	if err != nil {
		return err
	}

	*p = provider

	return nil
}
