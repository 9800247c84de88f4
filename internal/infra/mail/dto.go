package mail

type ContactEmailData struct {
	Name       string
	Email      string
	Message    string
	ReceivedAt string
}

type EmailSender struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	To       string

	dialer Dialer
}
