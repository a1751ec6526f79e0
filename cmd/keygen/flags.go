package main

import (
	"bytes"
	"flag"
	"fmt"
	"strings"

	"github.com/hashicorp/consul/api"
	"github.com/kr/text"
)

// HTTPFlags configures the Consul API client used by the KV sink. Unset
// values fall back to the standard CONSUL_* environment variables.
type HTTPFlags struct {
	address    string
	token      string
	datacenter string
}

func (f *HTTPFlags) MergeAll(flags *flag.FlagSet) {
	flags.StringVar(&f.address, "http-addr", "", "The address and port of the Consul HTTP agent. Defaults to CONSUL_HTTP_ADDR or 127.0.0.1:8500")
	flags.StringVar(&f.token, "token", "", "ACL token to use for Consul requests. Defaults to CONSUL_HTTP_TOKEN")
	flags.StringVar(&f.datacenter, "datacenter", "", "Consul datacenter to write keys to. Defaults to the agent's datacenter")
}

func (f *HTTPFlags) APIClient() (*api.Client, error) {
	conf := api.DefaultConfig()
	if f.address != "" {
		conf.Address = f.address
	}
	if f.token != "" {
		conf.Token = f.token
	}
	if f.datacenter != "" {
		conf.Datacenter = f.datacenter
	}
	return api.NewClient(conf)
}

// stringSliceFlag collects every occurrence of a repeatable flag.
type stringSliceFlag []string

func (s *stringSliceFlag) String() string {
	if s == nil {
		return ""
	}
	return strings.Join(*s, ",")
}

func (s *stringSliceFlag) Set(value string) error {
	*s = append(*s, value)
	return nil
}

// genUsage renders the help text followed by every flag with its usage
// wrapped and indented.
func genUsage(help string, flags *flag.FlagSet) string {
	var out bytes.Buffer
	out.WriteString(strings.TrimSpace(help))
	out.WriteString("\n\nOptions:\n\n")

	flags.VisitAll(func(f *flag.Flag) {
		fmt.Fprintf(&out, "  -%s", f.Name)
		if f.DefValue != "" {
			fmt.Fprintf(&out, "=%s", f.DefValue)
		}
		out.WriteString("\n")
		out.WriteString(text.Indent(text.Wrap(f.Usage, 72), "      "))
		out.WriteString("\n\n")
	})

	return strings.TrimRight(out.String(), "\n")
}
