package wellbeing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTopicsCatalog(t *testing.T) {
	t.Run("has seven topics in display order", func(t *testing.T) {
		assert.Len(t, Topics, 7)

		ids := make([]string, 0, len(Topics))
		for _, topic := range Topics {
			ids = append(ids, topic.ID)
		}
		assert.Equal(t, []string{
			"leadership",
			"personal_growth",
			"feedback",
			"teamwork",
			"motivation",
			"psychological_safety",
			"company_culture",
		}, ids)
	})

	t.Run("every topic has title and description", func(t *testing.T) {
		for _, topic := range Topics {
			assert.NotEmpty(t, topic.Title, "topic %s", topic.ID)
			assert.NotEmpty(t, topic.Description, "topic %s", topic.ID)
		}
	})
}

func TestLookup(t *testing.T) {
	t.Run("known id", func(t *testing.T) {
		topic, ok := Lookup("teamwork")
		assert.True(t, ok)
		assert.Equal(t, "Teamwork", topic.Title)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, ok := Lookup("work_life_balance")
		assert.False(t, ok)
		assert.False(t, Known("work_life_balance"))
	})
}
