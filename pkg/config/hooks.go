package config

import (
	"fmt"
	"reflect"

	"github.com/go-viper/mapstructure/v2"
)

var useListType = reflect.TypeOf(UseList{})

// useListHook decodes the flexible `use` field: a single reference string,
// a list of reference strings, a list of {loader, options} tables, or a
// single table. References carrying inline options are parsed here so the
// rest of the build only ever sees structured steps.
func useListHook() mapstructure.DecodeHookFuncType {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != useListType {
			return data, nil
		}

		switch v := data.(type) {
		case nil:
			return UseList(nil), nil
		case string:
			step, err := ParseLoaderRef(v)
			if err != nil {
				return nil, err
			}
			return UseList{step}, nil
		case map[string]interface{}:
			step, err := stepFromTable(v)
			if err != nil {
				return nil, err
			}
			return UseList{step}, nil
		case []interface{}:
			steps := make(UseList, 0, len(v))
			for i, item := range v {
				var (
					step Step
					err  error
				)
				switch entry := item.(type) {
				case string:
					step, err = ParseLoaderRef(entry)
				case map[string]interface{}:
					step, err = stepFromTable(entry)
				default:
					err = fmt.Errorf("use[%d]: unsupported entry of type %T", i, item)
				}
				if err != nil {
					return nil, err
				}
				steps = append(steps, step)
			}
			return steps, nil
		case []string:
			steps := make(UseList, 0, len(v))
			for _, ref := range v {
				step, err := ParseLoaderRef(ref)
				if err != nil {
					return nil, err
				}
				steps = append(steps, step)
			}
			return steps, nil
		}
		return data, nil
	}
}

func stepFromTable(table map[string]interface{}) (Step, error) {
	ref, ok := table["loader"].(string)
	if !ok || ref == "" {
		return Step{}, fmt.Errorf("use entry %v has no loader name", table)
	}
	step, err := ParseLoaderRef(ref)
	if err != nil {
		return Step{}, err
	}

	if raw, present := table["options"]; present && raw != nil {
		opts, ok := raw.(map[string]interface{})
		if !ok {
			return Step{}, fmt.Errorf("options of loader %q must be a table, got %T", step.Loader, raw)
		}
		step.Options = mergeOptions(step.Options, opts)
	}
	return step, nil
}
