package config

// Default returns the configuration defaults applied before a file is read.
func Default() Config {
	return Config{
		Paths: Paths{
			MediaRoot:  "~/.local/share/afisha/media",
			PostersDir: "posters",
			LogDir:     "~/.local/share/afisha/logs",
		},
		Database: Database{
			Backend:    "sqlite",
			SQLitePath: "~/.local/share/afisha/afisha.db",
		},
		Scraping: Scraping{
			UserAgent:      "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			TimeoutSeconds: 30,
			Workers:        4,
		},
		RegistrySync: RegistrySync{
			BaseURL:        "https://opendata.mkrf.ru/v2/register_movies/7",
			TimeoutSeconds: 60,
		},
		Daemon: Daemon{
			Schedule: "0 6 * * *",
		},
		Logging: Logging{
			Format: "console",
			Level:  "info",
		},
	}
}
