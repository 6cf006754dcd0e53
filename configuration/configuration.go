package configuration

type Configuration struct {
	HttpAddr   string `usage:"HTTP address"`
	Version    bool   `usage:"show version and exit"`
	ShowConfig bool   `usage:"print config"`
}

func Default() Configuration {
	return Configuration{
		HttpAddr: ":8080",
	}
}
