package notifier

import (
	"fmt"
	"log"

	"github.com/NBS282/themepark-api/internal/models"
	"github.com/bwmarrin/discordgo"
)

// Notifier pushes incident lifecycle alerts to the operations team.
type Notifier interface {
	IncidentOpened(attraction string, incident models.Incident) error
	IncidentResolved(attraction string, incident models.Incident) error
}

type DiscordNotifier struct {
	session   *discordgo.Session
	channelID string
}

func NewDiscordNotifier(session *discordgo.Session, channelID string) *DiscordNotifier {
	return &DiscordNotifier{
		session:   session,
		channelID: channelID,
	}
}

func (n *DiscordNotifier) IncidentOpened(attraction string, incident models.Incident) error {
	origin := "manual report"
	if incident.MaintenanceID != nil {
		origin = "preventive maintenance"
	}

	message := fmt.Sprintf("🚨 **Attraction out of service**\n**Attraction:** %s\n**Origin:** %s\n**Description:** %s",
		attraction,
		origin,
		incident.Description,
	)

	return n.send(message)
}

func (n *DiscordNotifier) IncidentResolved(attraction string, incident models.Incident) error {
	message := fmt.Sprintf("✅ **Incident resolved**\n**Attraction:** %s\n**Description:** %s",
		attraction,
		incident.Description,
	)

	return n.send(message)
}

func (n *DiscordNotifier) send(message string) error {
	if n.session == nil {
		return fmt.Errorf("discord session is nil")
	}
	if n.channelID == "" {
		return fmt.Errorf("discord channel ID is empty")
	}

	_, err := n.session.ChannelMessageSend(n.channelID, message)
	if err != nil {
		log.Printf("Failed to send discord message: %v", err)
		return err
	}

	return nil
}
