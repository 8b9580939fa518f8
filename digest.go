package main

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
)

const (
	refreshEmoji      = "🔄"
	attachmentsHeader = "Прикреплённые файлы: "
	weeklyTitlePrefix = "Домашнее задание"
	noHomeworkText    = `¯\_(ツ)_/¯ Ничего не задано`

	// Lesson labels from channel tags and lesson names on the site are two
	// different vocabularies; the digest joins them on the first three
	// characters of the label.
	fuzzyJoinLen = 3
)

var weekdayNames = map[time.Weekday]string{
	time.Monday:    "понедельник",
	time.Tuesday:   "вторник",
	time.Wednesday: "среда",
	time.Thursday:  "четверг",
	time.Friday:    "пятница",
	time.Saturday:  "суббота",
	time.Sunday:    "воскресенье",
}

// formatTitle renders a digest title like "Вторник 15.09.24". The embedded
// date is what later ticks and the refresh handler parse back out.
func formatTitle(date time.Time) string {
	return capitalize(weekdayNames[date.Weekday()]) + " " + date.Format(dateLayout)
}

// parseTitleDate recovers the date embedded by formatTitle.
func parseTitleDate(title string) (time.Time, error) {
	fields := strings.Fields(title)
	if len(fields) < 2 {
		return time.Time{}, fmt.Errorf("no date in title %q", title)
	}
	return time.Parse(dateLayout, fields[1])
}

func formatWeeklyTitle(from, to time.Time) string {
	return fmt.Sprintf("%s с %s по %s", weeklyTitlePrefix, from.Format(dateLayout), to.Format(dateLayout))
}

func parseWeeklyTitle(title string) (from, to time.Time, err error) {
	fields := strings.Fields(title)
	if len(fields) < 6 {
		err = fmt.Errorf("no date range in title %q", title)
		return
	}
	if from, err = time.Parse(dateLayout, fields[3]); err != nil {
		return
	}
	to, err = time.Parse(dateLayout, fields[5])
	return
}

// DigestBuilder merges a scraped course schedule with collected homework into
// a postable embed.
type DigestBuilder struct {
	scheduleURL string
	color       int
}

func NewDigestBuilder(scheduleURL string, color int) *DigestBuilder {
	return &DigestBuilder{scheduleURL: scheduleURL, color: color}
}

// scheduleLines renders "`N` Lesson" per non-blank period. Numbering follows
// the period position, so a blank period drops its line without renumbering
// the rest.
func scheduleLines(lessons []string) []string {
	var lines []string
	for i, lesson := range lessons {
		lesson = strings.TrimSpace(lesson)
		if lesson == "" {
			continue
		}
		lines = append(lines, fmt.Sprintf("`%d` %s", i+1, lesson))
	}
	return lines
}

// Build assembles the daily digest for one course.
func (b *DigestBuilder) Build(date time.Time, lessons []string, homework map[string]HomeworkItem) *discordgo.MessageEmbed {
	description := ""
	for _, line := range scheduleLines(lessons) {
		description += "\n" + line
	}
	embed := &discordgo.MessageEmbed{
		Title:       formatTitle(date),
		Description: description,
		URL:         b.scheduleURL,
		Color:       b.color,
	}
	embed.Fields = homeworkFields(description, homework)
	return embed
}

// homeworkFields renders one section per homework item whose lesson label
// matches the rendered schedule text. Accidental substring collisions are
// accepted, the loose join is deliberate.
func homeworkFields(scheduleText string, homework map[string]HomeworkItem) []*discordgo.MessageEmbedField {
	haystack := strings.ToLower(scheduleText)
	lessons := make([]string, 0, len(homework))
	for lesson := range homework {
		lessons = append(lessons, lesson)
	}
	sort.Strings(lessons)

	var fields []*discordgo.MessageEmbedField
	for _, lesson := range lessons {
		if !lessonMatchesSchedule(lesson, haystack) {
			continue
		}
		value := renderHomework(homework[lesson])
		if value == "" {
			continue
		}
		fields = append(fields, &discordgo.MessageEmbedField{Name: lesson, Value: value})
	}
	return fields
}

func lessonMatchesSchedule(lesson, haystack string) bool {
	needle := []rune(strings.ToLower(lesson))
	if len(needle) > fuzzyJoinLen {
		needle = needle[:fuzzyJoinLen]
	}
	return strings.Contains(haystack, string(needle))
}

func renderHomework(homework HomeworkItem) string {
	value := homework.Content
	if len(homework.Files) > 0 {
		links := make([]string, len(homework.Files))
		for i, url := range homework.Files {
			links[i] = fmt.Sprintf("[№%d](%s)", i+1, url)
		}
		value += "\n" + attachmentsHeader + strings.Join(links, ", ")
	}
	return value
}

// BuildWeekly assembles the Friday digest covering the next school week, one
// field per date.
func (b *DigestBuilder) BuildWeekly(from, to time.Time, homework map[string]map[string]HomeworkItem) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: formatWeeklyTitle(from, to),
		Color: b.color,
	}
	for _, date := range dateRange(from, to) {
		byLesson := homework[date]
		lessons := make([]string, 0, len(byLesson))
		for lesson := range byLesson {
			lessons = append(lessons, lesson)
		}
		sort.Strings(lessons)

		values := ""
		for _, lesson := range lessons {
			if value := renderHomework(byLesson[lesson]); value != "" {
				values += fmt.Sprintf("**%s**%s\n", lesson, value)
			}
		}
		if values == "" {
			values = noHomeworkText
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: date, Value: values})
	}
	return embed
}
