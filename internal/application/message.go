package application

import (
	"fmt"
	"time"

	"github.com/ericfisherdev/snipecord/internal/domain/model"
)

// Sender identity shown on every chat message.
const (
	BotUsername  = "RU SnipeCord"
	BotAvatarURL = "https://upload.wikimedia.org/wikipedia/commons/thumb/1/1c/Rifle_scope.svg/240px-Rifle_scope.svg.png"
)

// ReadyContent is the body of the one-time startup message.
const ReadyContent = "Ready for action!!"

const webRegURL = "http://sims.rutgers.edu/webreg/editSchedule.htm?login=cas&semesterSelection=%s&indexList=%s"

// Event topics published for each dispatched notification.
const (
	TopicSectionOpened = "snipecord.section.opened"
	TopicWatcherReady  = "snipecord.watcher.ready"
)

// SectionOpened is the event payload published when an alert fires.
type SectionOpened struct {
	Index   string    `json:"index"`
	Label   string    `json:"label"`
	Content string    `json:"content"`
	FiredAt time.Time `json:"fired_at"`
}

// WatcherReady is the event payload published once at startup.
type WatcherReady struct {
	Indexes []string  `json:"indexes"`
	At      time.Time `json:"at"`
}

// RegistrationURL returns the WebReg link that adds index to the schedule
// for the queried semester.
func RegistrationURL(q model.Query, index string) string {
	return fmt.Sprintf(webRegURL, q.Semester(), index)
}

// OpenContent builds the alert body. mention may be empty.
func OpenContent(mention string, q model.Query, alert model.Alert) string {
	return fmt.Sprintf("%s\n%s is open!!! Register with %s", mention, alert.Label, RegistrationURL(q, alert.Index))
}

func newMessage(content string) model.Message {
	return model.Message{
		Username:  BotUsername,
		AvatarURL: BotAvatarURL,
		Content:   content,
	}
}
