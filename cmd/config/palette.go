package config

type (
	// Palette maps an output role to its colour, e.g. in YAML:
	//
	//	colors:
	//	  match: {color: red}
	//	  context: {custom: [90]}
	Palette map[Role]Color
	Role    string
	Color   struct {
		Color       PColor `koanf:"color"`
		CustomColor []int  `koanf:"custom"`
	}
	PColor string
)

const (
	RoleMatch     Role = "match"
	RoleContext   Role = "context"
	RoleSeparator Role = "separator"
	RoleHighlight Role = "highlight"
)

const (
	PColorBlack   PColor = "black"
	PColorRed     PColor = "red"
	PColorGreen   PColor = "green"
	PColorYellow  PColor = "yellow"
	PColorBlue    PColor = "blue"
	PColorMagenta PColor = "magenta"
	PColorCyan    PColor = "cyan"
	PColorWhite   PColor = "white"
)
