package abi

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
)

//go:embed contracts/CoverageInsurance.json
var defaultContractJSON []byte

// Param is a function or event parameter as it appears in the artifact.
type Param struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Indexed bool   `json:"indexed,omitempty"`
}

// Method is one contract function from the interface description.
type Method struct {
	Name    string
	Inputs  []Param
	Outputs []Param
	Payable bool
	View    bool
}

// Signature returns the canonical form, e.g. "payPremium(uint256)".
func (m Method) Signature() string { return signature(m.Name, m.Inputs) }

// Encode encodes args as calldata for m.
func (m Method) Encode(args ...Value) (string, error) {
	return EncodeCall(m.Signature(), args...)
}

// DecodeOutputs decodes eth_call return data for m's declared outputs.
func (m Method) DecodeOutputs(data string) ([]interface{}, error) {
	types := make([]string, len(m.Outputs))
	for i, p := range m.Outputs {
		types[i] = p.Type
	}
	return DecodeOutputs(types, data)
}

// Event is one contract event from the interface description.
type Event struct {
	Name   string
	Inputs []Param
}

// Signature returns the canonical form used for the topic hash.
func (e Event) Signature() string { return signature(e.Name, e.Inputs) }

// Topic is the event signature hash nodes report as topics[0].
func (e Event) Topic() string { return TopicOf(e.Signature()) }

// Contract is a parsed interface description: the callable functions,
// events and deployed address per network id. It is read-only once parsed.
type Contract struct {
	Name     string
	methods  map[string]Method
	events   map[string]Event
	networks map[string]string
}

type artifact struct {
	ContractName string `json:"contractName"`
	ABI          []struct {
		Type            string  `json:"type"`
		Name            string  `json:"name"`
		Inputs          []Param `json:"inputs"`
		Outputs         []Param `json:"outputs"`
		StateMutability string  `json:"stateMutability"`
		Payable         bool    `json:"payable"`
		Constant        bool    `json:"constant"`
	} `json:"abi"`
	Networks map[string]struct {
		Address string `json:"address"`
	} `json:"networks"`
}

// ParseContract parses a Truffle-style JSON artifact. Overloaded functions
// are not supported; the last definition of a name wins.
func ParseContract(data []byte) (*Contract, error) {
	var a artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("failed to parse contract interface: %w", err)
	}
	if len(a.ABI) == 0 {
		return nil, fmt.Errorf("contract interface %q has no abi entries", a.ContractName)
	}

	c := &Contract{
		Name:     a.ContractName,
		methods:  make(map[string]Method),
		events:   make(map[string]Event),
		networks: make(map[string]string),
	}
	for _, entry := range a.ABI {
		switch entry.Type {
		case "function":
			c.methods[entry.Name] = Method{
				Name:    entry.Name,
				Inputs:  entry.Inputs,
				Outputs: entry.Outputs,
				Payable: entry.StateMutability == "payable" || entry.Payable,
				View:    entry.StateMutability == "view" || entry.StateMutability == "pure" || entry.Constant,
			}
		case "event":
			c.events[entry.Name] = Event{Name: entry.Name, Inputs: entry.Inputs}
		}
	}
	for id, n := range a.Networks {
		if n.Address != "" {
			c.networks[id] = n.Address
		}
	}
	return c, nil
}

// LoadContract reads and parses an interface description from path.
func LoadContract(path string) (*Contract, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read contract interface: %w", err)
	}
	return ParseContract(data)
}

// DefaultContract returns the embedded CoverageInsurance interface.
func DefaultContract() (*Contract, error) {
	return ParseContract(defaultContractJSON)
}

// Method looks up a function by name. An unknown name is an
// *EncodingError since nothing can be encoded for it.
func (c *Contract) Method(name string) (Method, error) {
	m, ok := c.methods[name]
	if !ok {
		return Method{}, &EncodingError{Index: -1, Reason: fmt.Sprintf("contract %s has no function %q", c.Name, name)}
	}
	return m, nil
}

// Event looks up an event by name.
func (c *Contract) Event(name string) (Event, error) {
	e, ok := c.events[name]
	if !ok {
		return Event{}, fmt.Errorf("contract %s has no event %q", c.Name, name)
	}
	return e, nil
}

// AddressFor returns the deployed address for a network id.
func (c *Contract) AddressFor(network string) (string, error) {
	addr, ok := c.networks[network]
	if !ok {
		return "", fmt.Errorf("contract %s is not deployed on network %q (known: %s)", c.Name, network, strings.Join(c.Networks(), ", "))
	}
	return addr, nil
}

// Networks returns the network ids with a deployed address, sorted.
func (c *Contract) Networks() []string {
	ids := make([]string, 0, len(c.networks))
	for id := range c.networks {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func signature(name string, params []Param) string {
	types := make([]string, len(params))
	for i, p := range params {
		types[i] = p.Type
	}
	return name + "(" + strings.Join(types, ",") + ")"
}
