package cli

const notSet = "(not set)"

// orNotSet возвращает значение необязательного поля для вывода
func orNotSet(value *string) string {
	if value == nil || *value == "" {
		return notSet
	}
	return *value
}

func (c *Cli) printSettings(language, country, timezone *string) {
	c.io.Printf("Language: %s\n", orNotSet(language))
	c.io.Printf("Country: %s\n", orNotSet(country))
	c.io.Printf("Timezone: %s\n", orNotSet(timezone))
}
