package checkcmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/sni/shelltoken"
	"gopkg.in/yaml.v3"
)

// Config is the optional rules file. Everything in here can also be given
// on the command line, flags win over file values and labels concatenate
// with the file entries first.
type Config struct {
	Command        string      `yaml:"command"`
	Timeout        int64       `yaml:"timeout"`
	TimeWarn       string      `yaml:"time_warn"`
	TimeCrit       string      `yaml:"time_crit"`
	IgnoreExitCode bool        `yaml:"ignore_exit_code"`
	ShortName      string      `yaml:"shortname"`
	Separator      string      `yaml:"separator"`
	Labels         []*RuleSpec `yaml:"labels"`
}

// ReadConfig loads a yaml rules file.
func ReadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %s", path, err.Error())
	}

	conf := &Config{}
	if err := yaml.Unmarshal(data, conf); err != nil {
		return nil, fmt.Errorf("cannot parse %s: %s", path, err.Error())
	}

	return conf, nil
}

// ParseLabelSpec parses one command line label declaration of the form
//
//	name=http_code;pattern=http_code:(\d+);mode=parse;warn=10;crit=20
//
// Semicolons inside quotes do not split, quotes around values are removed.
func ParseLabelSpec(decl string) (*RuleSpec, error) {
	fields, err := shelltoken.SplitQuotes(decl, ";", shelltoken.SplitKeepBackslashes|shelltoken.SplitKeepQuotes)
	if err != nil {
		return nil, &ConfigError{Reason: fmt.Sprintf("cannot parse label declaration '%s': %s", decl, err.Error())}
	}

	spec := &RuleSpec{}
	for _, field := range fields {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}

		key, value, found := strings.Cut(field, "=")
		if !found {
			return nil, &ConfigError{Label: spec.Name, Reason: fmt.Sprintf("expected key=value, got '%s'", field)}
		}
		value = trimQuotes(value)

		switch key {
		case "name":
			spec.Name = value
		case "pattern":
			spec.Pattern = value
		case "mode":
			spec.Mode = value
		case "severity":
			num, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return nil, &ConfigError{Label: spec.Name, Reason: fmt.Sprintf("cannot parse severity '%s'", value)}
			}
			spec.Severity = &num
		case "message":
			spec.Message = value
		case "warn":
			spec.Warn = value
		case "crit":
			spec.Crit = value
		default:
			return nil, &ConfigError{Label: spec.Name, Reason: fmt.Sprintf("unknown key '%s'", key)}
		}
	}

	return spec, nil
}

func trimQuotes(value string) string {
	switch {
	case strings.HasPrefix(value, "'") && strings.HasSuffix(value, "'") && len(value) >= 2:
		value = strings.TrimPrefix(value, "'")
		value = strings.TrimSuffix(value, "'")
	case strings.HasPrefix(value, `"`) && strings.HasSuffix(value, `"`) && len(value) >= 2:
		value = strings.TrimPrefix(value, `"`)
		value = strings.TrimSuffix(value, `"`)
	}

	return value
}
