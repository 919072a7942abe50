package mail

type ReminderEmailData struct {
	Name string
	Task string
	When string
	Lead string
}

type Config struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

type EmailSender struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}
