package option

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/towalink/hostname2set/constant"
	"github.com/towalink/hostname2set/lib/tools"
	"github.com/towalink/hostname2set/lib/types"

	"gopkg.in/yaml.v3"
)

// Option is the complete configuration of one run. It is built once, from an
// optional config file overlaid with command line arguments, and passed by
// value afterwards.
type Option struct {
	LogOption      LogOption              `config:"log"`
	UpstreamOption UpstreamOption         `config:"upstream"`
	BackendOption  BackendOption          `config:"backend"`
	Family         types.AddressFamily    `config:"type"`
	Table          types.TableLocator     `config:"table"`
	Set            string                 `config:"set"`
	Hostnames      types.Listable[string] `config:"hostnames"`
}

type configType string

const (
	JSON configType = "json"
	YAML configType = "yaml"
)

func ReadFile(file string) (*Option, error) {
	content, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	switch filepath.Ext(file) {
	case ".json", ".jsonc":
		return ReadContent(content, JSON)
	case ".yaml", ".yml":
		return ReadContent(content, YAML)
	default:
		return ReadContent(content, "")
	}
}

func ReadContent(content []byte, configType configType) (*Option, error) {
	var optionMap map[string]any
	var err error
	switch configType {
	case JSON:
		err = json.Unmarshal(content, &optionMap)
	case YAML:
		err = yaml.Unmarshal(content, &optionMap)
	default:
		err = yaml.Unmarshal(content, &optionMap)
		if err != nil {
			err = json.Unmarshal(content, &optionMap)
			if err != nil {
				return nil, fmt.Errorf("config type %s not support", configType)
			}
		}
	}
	if err != nil {
		return nil, err
	}
	var option Option
	err = tools.NewMapStructureDecoderWithResult(&option).Decode(optionMap)
	if err != nil {
		return nil, err
	}
	return &option, nil
}

// Default returns the option used when no config file is given.
func Default() Option {
	var o Option
	o.ApplyDefaults()
	return o
}

func (o *Option) ApplyDefaults() {
	if !o.Family.IsValid() {
		o.Family = types.IPv6
	}
	if o.Table.IsZero() {
		o.Table = types.TableLocator{
			Kind: constant.DefaultTableKind,
			Name: constant.DefaultTableName,
		}
	}
	if o.UpstreamOption.Type == "" {
		o.UpstreamOption.Type = constant.UpstreamSystem
	}
	if o.BackendOption.Type == "" {
		o.BackendOption.Type = constant.BackendNftables
	}
}

func (o Option) Validate() error {
	if !o.Family.IsValid() {
		return fmt.Errorf("address type is not set")
	}
	if o.Table.Name == "" {
		return fmt.Errorf("table name is empty")
	}
	if _, err := types.ParseTableKind(string(o.Table.Kind)); err != nil {
		return err
	}
	if o.Set == "" {
		return fmt.Errorf("set name is empty")
	}
	if len(o.Hostnames) == 0 {
		return fmt.Errorf("no hostname given")
	}
	for i, hostname := range o.Hostnames {
		if hostname == "" {
			return fmt.Errorf("hostname #%d is empty", i+1)
		}
	}
	err := o.UpstreamOption.Validate()
	if err != nil {
		return fmt.Errorf("invalid upstream: %s", err)
	}
	err = o.BackendOption.Validate()
	if err != nil {
		return fmt.Errorf("invalid backend: %s", err)
	}
	return nil
}
