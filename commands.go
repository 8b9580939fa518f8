package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// CommandHandler dispatches prefix commands posted in guild channels.
type CommandHandler struct {
	session      *discordgo.Session
	store        *Store
	scraper      *ScheduleScraper
	admission    *AdmissionExporter
	prefix       string
	colorDefault int
	colorError   int
}

func NewCommandHandler(session *discordgo.Session, store *Store, scraper *ScheduleScraper, admission *AdmissionExporter, config *Config) *CommandHandler {
	return &CommandHandler{
		session:      session,
		store:        store,
		scraper:      scraper,
		admission:    admission,
		prefix:       config.CommandPrefix,
		colorDefault: config.ColorDefault,
		colorError:   config.ColorError,
	}
}

// Handle is wired to discordgo's MessageCreate event.
func (h *CommandHandler) Handle(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot || m.GuildID == "" {
		return
	}
	if !strings.HasPrefix(m.Content, h.prefix) {
		return
	}
	fields := strings.Fields(strings.TrimPrefix(m.Content, h.prefix))
	if len(fields) == 0 {
		return
	}
	command, args := strings.ToLower(fields[0]), fields[1:]

	var err error
	switch command {
	case "schedule":
		err = h.schedule(m, args)
	case "set_course":
		err = h.setCourse(m, args)
	case "toggle_schedule":
		err = h.toggleSchedule(m, args)
	case "set_lesson":
		err = h.setLesson(m, args)
	case "unset_lesson":
		err = h.unsetLesson(m, args)
	case "get_lessons":
		err = h.getLessons(m)
	case "admission":
		err = h.updateAdmission(m)
	case "clear":
		err = h.clear(m, args)
	case "mute":
		err = h.mute(m, true)
	case "unmute":
		err = h.mute(m, false)
	case "ban":
		err = h.ban(m, args)
	default:
		return
	}
	if err != nil {
		h.sendError(m.ChannelID, err)
	}
}

func (h *CommandHandler) sendError(channelID string, err error) {
	logger.Warn("command failed", zap.Error(err))
	embed := &discordgo.MessageEmbed{
		Title:       "Something went wrong",
		Description: "🚫 " + err.Error(),
		Color:       h.colorError,
	}
	if _, sendErr := h.session.ChannelMessageSendEmbed(channelID, embed); sendErr != nil {
		logger.Error("failed to send error reply", zap.Error(sendErr))
	}
}

func (h *CommandHandler) reply(channelID, description string) error {
	_, err := h.session.ChannelMessageSendEmbed(channelID, &discordgo.MessageEmbed{
		Description: description,
		Color:       h.colorDefault,
	})
	return err
}

// schedule posts the timetable for an optional date and course to the channel
// the command was invoked in. Weekend dates roll forward to Monday.
func (h *CommandHandler) schedule(m *discordgo.MessageCreate, args []string) error {
	date := time.Now()
	if len(args) > 0 {
		parsed, err := time.Parse(dateLayout, args[0])
		if err != nil {
			return fmt.Errorf("date should have DD.MM.YY format")
		}
		date = parsed
	}
	switch date.Weekday() {
	case time.Saturday:
		date = date.AddDate(0, 0, 2)
	case time.Sunday:
		date = date.AddDate(0, 0, 1)
	}

	course := ""
	if len(args) > 1 {
		course = args[1]
	} else {
		stored, err := h.store.GuildCourse(m.GuildID)
		if err != nil {
			return err
		}
		if stored == "" {
			return fmt.Errorf("course is not specified for this server, use set_course")
		}
		course = stored
	}

	timetable, err := h.scraper.Fetch(date)
	if err != nil {
		return err
	}
	lessons, ok := timetable[course]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCourse, course)
	}

	description := ""
	for _, line := range scheduleLines(lessons) {
		description += "\n" + line
	}
	_, err = h.session.ChannelMessageSendEmbed(m.ChannelID, &discordgo.MessageEmbed{
		Title:       formatTitle(date) + " " + course,
		Description: description,
		Color:       h.colorDefault,
	})
	return err
}

func (h *CommandHandler) setCourse(m *discordgo.MessageCreate, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("**course** is a required argument that is missing")
	}
	if err := h.store.SetCourse(m.GuildID, args[0]); err != nil {
		return err
	}
	return h.reply(m.ChannelID, fmt.Sprintf("Course of this server is set as **%s**", args[0]))
}

func (h *CommandHandler) toggleSchedule(m *discordgo.MessageCreate, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("**channel** is a required argument that is missing")
	}
	channelID := parseChannelMention(args[0])
	enabled, err := h.store.ToggleSchedule(m.GuildID, channelID)
	if err != nil {
		return err
	}
	if !enabled {
		return h.reply(m.ChannelID, "Now the schedule will not be sent")
	}
	return h.reply(m.ChannelID, fmt.Sprintf("Now the schedule will be sent to <#%s>", channelID))
}

func (h *CommandHandler) setLesson(m *discordgo.MessageCreate, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("**channel** and **lesson** are required arguments")
	}
	channelID := parseChannelMention(args[0])
	lesson := strings.ToLower(args[1])
	if err := h.store.SetLesson(channelID, lesson); err != nil {
		return err
	}
	return h.reply(m.ChannelID, fmt.Sprintf("Now I will look for **%s** homework in <#%s>", lesson, channelID))
}

func (h *CommandHandler) unsetLesson(m *discordgo.MessageCreate, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("**channel** is a required argument that is missing")
	}
	channelID := parseChannelMention(args[0])
	if err := h.store.UnsetLesson(channelID); err != nil {
		return err
	}
	return h.reply(m.ChannelID, fmt.Sprintf("Now <#%s> is not related to homework", channelID))
}

func (h *CommandHandler) getLessons(m *discordgo.MessageCreate) error {
	lessons, err := h.store.Lessons()
	if err != nil {
		return err
	}
	for i, lesson := range lessons {
		lessons[i] = capitalize(lesson)
	}
	_, err = h.session.ChannelMessageSendEmbed(m.ChannelID, &discordgo.MessageEmbed{
		Title:       "Available lessons",
		Description: strings.Join(lessons, "\n"),
		Color:       h.colorDefault,
	})
	return err
}

func (h *CommandHandler) updateAdmission(m *discordgo.MessageCreate) error {
	if h.admission == nil {
		return fmt.Errorf("admission export is not configured")
	}
	rows, err := h.admission.Export(context.Background())
	if err != nil {
		return err
	}
	return h.reply(m.ChannelID, fmt.Sprintf("Admission list updated, **%d** rows exported", rows))
}
