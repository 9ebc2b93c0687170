package guard

import (
	"fmt"

	"youassist/internal/config"
)

// BuildInputChain constructs the ordered input scanner chain from
// configuration. Chain membership and order are configuration, not policy
// hard-coded into the orchestrator.
func BuildInputChain(cfgs []config.ScannerConfig) (InputChain, error) {
	chain := make(InputChain, 0, len(cfgs))
	for _, cfg := range cfgs {
		switch cfg.Type {
		case "prompt_injection":
			chain = append(chain, NewPromptInjection())
		case "ban_substrings":
			chain = append(chain, NewBanSubstrings(cfg.Substrings))
		case "toxicity":
			chain = append(chain, NewInputToxicity(cfg.Threshold))
		case "regex":
			scanner, err := NewRegex(cfg.Patterns)
			if err != nil {
				return nil, err
			}
			chain = append(chain, scanner)
		case "language":
			scanner, err := NewLanguage(cfg.Allowed)
			if err != nil {
				return nil, err
			}
			chain = append(chain, scanner)
		default:
			return nil, fmt.Errorf("unknown input scanner type %q", cfg.Type)
		}
	}
	return chain, nil
}

// BuildOutputChain constructs the ordered output scanner chain from
// configuration.
func BuildOutputChain(cfgs []config.ScannerConfig) (OutputChain, error) {
	chain := make(OutputChain, 0, len(cfgs))
	for _, cfg := range cfgs {
		switch cfg.Type {
		case "toxicity":
			chain = append(chain, NewOutputToxicity(cfg.Threshold))
		case "bias":
			chain = append(chain, NewBias())
		case "malicious_urls":
			chain = append(chain, NewMaliciousURLs(cfg.Hosts))
		case "no_refusal":
			chain = append(chain, NewNoRefusal())
		default:
			return nil, fmt.Errorf("unknown output scanner type %q", cfg.Type)
		}
	}
	return chain, nil
}
