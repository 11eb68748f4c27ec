package common

import (
	"fmt"

	"github.com/ternarybob/banner"
)

// PrintBanner displays the startup banner with the address and scoring setup
func PrintBanner(config *Config, version string) {
	b := banner.New().
		SetStyle(banner.StyleDouble).
		SetWidth(60).
		SetBold(true)

	b.PrintTopLine()
	b.PrintCenteredText("MoneyPulse")
	b.PrintCenteredText("Financial health score and money tips")
	b.PrintSeparatorLine()
	b.PrintKeyValue("Version", version, 12)
	b.PrintKeyValue("Address", fmt.Sprintf("http://%s:%d", config.Server.Host, config.Server.Port), 12)
	b.PrintKeyValue("Provider", string(config.LLM.Provider), 12)
	b.PrintKeyValue("Parameters", config.Scoring.ParameterVersion, 12)
	b.PrintBottomLine()
	fmt.Println()
}
