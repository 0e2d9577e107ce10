package notifications

import (
	"fmt"
	"html"
)

// RegistrationConfirmation is the welcome email sent after sign-up.
func RegistrationConfirmation(username, email string) Message {
	return Message{
		ToName:  username,
		To:      email,
		Subject: "Conferma Registrazione al Travel Journal App",
		Text:    fmt.Sprintf("Benvenuto, %s! La tua registrazione è andata a buon fine. Inizia il tuo viaggio!", username),
		HTML: fmt.Sprintf(
			"<p>Ciao <strong>%s</strong>,</p><p>La tua registrazione al <strong>Travel Journal App</strong> è andata a buon fine. Preparati a raccontare le tue avventure!</p>",
			html.EscapeString(username),
		),
	}
}
