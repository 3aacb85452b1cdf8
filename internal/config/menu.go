package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// MenuSpec is the data-driven menu, phrase table, and database property
// mapping. The compiled-in defaults match the reference deployment; a YAML
// file named in CRYPTOBOT_MENU_FILE overrides sections wholesale.
type MenuSpec struct {
	Welcome string          `yaml:"welcome"`
	Menus   map[string]Menu `yaml:"menus"`
	// Phrases maps lowercased free-form text to a fixed reply.
	Phrases map[string]string `yaml:"phrases"`
	// Properties maps record fields to database property names.
	Properties map[string]string `yaml:"properties"`
}

// Menu is one keyboard screen.
type Menu struct {
	Title   string       `yaml:"title"`
	Buttons []MenuButton `yaml:"buttons"`
}

// MenuButton: pressing it makes the client send Action back as message text.
type MenuButton struct {
	Text    string `yaml:"text"`
	Action  string `yaml:"action"`
	Columns int    `yaml:"columns"`
}

// Root menu identifier; every deployment must define it.
const RootMenu = "main"

// DefaultMenuSpec returns the built-in menu, phrase table, and property
// mapping.
func DefaultMenuSpec() MenuSpec {
	return MenuSpec{
		Welcome: "🔐 Welcome to the private portfolio bot!",
		Menus: map[string]Menu{
			RootMenu: {
				Title: "Main menu",
				Buttons: []MenuButton{
					{Text: "💰 Crypto", Action: "crypto_menu", Columns: 3},
					{Text: "⚙️ Service", Action: "service_menu", Columns: 3},
				},
			},
			"crypto_menu": {
				Title: "Crypto reports",
				Buttons: []MenuButton{
					{Text: "📊 Quick report", Action: "quick_report", Columns: 3},
					{Text: "📋 Full report", Action: "full_report", Columns: 3},
					{Text: "🤖 AI analysis", Action: "ai_report", Columns: 3},
					{Text: "⬅️ Back", Action: "back_to_main", Columns: 3},
				},
			},
			"service_menu": {
				Title: "Service",
				Buttons: []MenuButton{
					{Text: "🔌 Check Notion", Action: "check_notion", Columns: 3},
					{Text: "✅ Status", Action: "status", Columns: 3},
					{Text: "⬅️ Back", Action: "back_to_main", Columns: 3},
				},
			},
		},
		Phrases: map[string]string{
			"hello":    "👋 Hi! This is a private bot.",
			"commands": "🛠 Commands: hello, commands, my id, status",
			"my id":    "🆔 Your ID: {sender_id}",
			"status":   "✅ The bot is up and running.",
		},
		Properties: map[string]string{
			"title":          "Name",
			"currentProfit":  "Текущая",
			"capitalization": "Капитализация",
			"turnover":       "Оборот",
			"depositPct":     "Депозит %",
			"avgPrice":       "Средняя цена",
			"currentPrice":   "Текущая цена",
		},
	}
}

// LoadMenuSpec returns the defaults merged with the overlay file, if any.
// A section present in the file replaces the default section entirely.
func LoadMenuSpec(path string) (MenuSpec, error) {
	spec := DefaultMenuSpec()
	if path == "" {
		return spec, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return spec, fmt.Errorf("read menu file: %w", err)
	}

	var overlay MenuSpec
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return spec, fmt.Errorf("parse menu file %s: %w", path, err)
	}

	if overlay.Welcome != "" {
		spec.Welcome = overlay.Welcome
	}
	if len(overlay.Menus) > 0 {
		spec.Menus = overlay.Menus
	}
	if len(overlay.Phrases) > 0 {
		spec.Phrases = overlay.Phrases
	}
	if len(overlay.Properties) > 0 {
		spec.Properties = overlay.Properties
	}

	if _, ok := spec.Menus[RootMenu]; !ok {
		return spec, fmt.Errorf("menu file %s defines no %q menu", path, RootMenu)
	}
	return spec, nil
}
