package config

import (
	"fmt"
	"reflect"

	"github.com/caarlos0/env/v10"
	"github.com/shopspring/decimal"
)

// parsers extends the env defaults with the types storefront configs use.
var parsers = map[reflect.Type]env.ParserFunc{
	reflect.TypeOf(decimal.Decimal{}): func(v string) (any, error) {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return nil, fmt.Errorf("parse decimal %q: %w", v, err)
		}
		return d, nil
	},
}

// Load parses environment variables into the provided struct.
// The struct should use `env` tags to define mappings; decimal.Decimal
// fields are parsed from their string form.
//
// Example:
//
//	type Config struct {
//	    Port         int             `env:"HTTP_PORT" envDefault:"8080"`
//	    ShippingCost decimal.Decimal `env:"SHIPPING_COST" envDefault:"0"`
//	}
func Load(cfg any) error {
	return LoadWithPrefix(cfg, "")
}

// LoadWithPrefix is like Load but only reads variables starting with prefix.
func LoadWithPrefix(cfg any, prefix string) error {
	opts := env.Options{
		Prefix:  prefix,
		FuncMap: parsers,
	}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}
