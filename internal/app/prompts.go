package app

import (
	"fmt"
	"strings"

	"github.com/plootony/MISTY/internal/domain"
)

const validationSystemPrompt = `Ты эксперт по Таро, эзотерике и мистике. Твоя задача - определить, подходит ли вопрос для гадания на картах Таро.

ПОДХОДЯЩИЕ вопросы:
- О личной жизни, отношениях, любви
- О карьере, работе, финансах
- О личностном росте, духовном развитии
- О будущем, прошлом, настоящем
- О принятии решений
- О внутреннем состоянии, эмоциях
- О жизненном пути и предназначении
- О здоровье (в общем смысле, не медицинские диагнозы)

НЕ ПОДХОДЯЩИЕ вопросы:
- Технические вопросы (программирование, математика, физика)
- Фактологические вопросы (столицы, даты, исторические факты)
- Медицинские диагнозы
- Юридические консультации
- Вопросы не по теме (рецепты, спорт, погода и т.д.)
- Оскорбительные или неуважительные вопросы
- Вопросы о причинении вреда

ВАЖНО: Ответь ТОЛЬКО чистым JSON без markdown форматирования и без обёрток.
Формат ответа:
{
  "isValid": true,
  "reason": "краткая причина (если не валиден)",
  "suggestion": "предложение как переформулировать (если не валиден)"
}`

const readerSystemPrompt = `Ты опытный таролог с глубокими знаниями в эзотерике и мистике.
Твоя задача - дать глубокое, мистическое и точное толкование карт Таро.
Используй символизм, архетипы и интуитивные прозрения.
Говори загадочно, но понятно. Будь мудрым наставником.
Не давай медицинских, юридических и финансовых рекомендаций.`

func validationUserPrompt(question string) string {
	return fmt.Sprintf("Проанализируй вопрос: %q", question)
}

func orientation(reversed bool) string {
	if reversed {
		return "перевёрнутая"
	}
	return "прямая"
}

func readingPrompt(question string, cards []domain.DrawnCard, spread domain.Spread) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Расклад: %s\n", spread.Name)
	fmt.Fprintf(&b, "Вопрос: %q\n\nВыпавшие карты:\n", question)
	for _, c := range cards {
		fmt.Fprintf(&b, "Позиция %d: %s (%s, %s)\n", c.Position, c.Card.Name, arcanaName(c.Card.Arcana), orientation(c.Reversed))
	}
	b.WriteString("\nДай развернутое толкование.")
	return b.String()
}

func cardPrompt(question string, card domain.DrawnCard, position domain.Position) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Вопрос: %q\n", question)
	fmt.Fprintf(&b, "Позиция: %s", position.Name)
	if position.Description != "" {
		fmt.Fprintf(&b, " — %s", position.Description)
	}
	fmt.Fprintf(&b, "\nКарта: %s (%s)\n", card.Card.Name, orientation(card.Reversed))
	fmt.Fprintf(&b, "Традиционное значение: %s\n", card.Meaning())
	b.WriteString("\nИстолкуй эту карту в этой позиции применительно к вопросу. Ответ: 2-3 абзаца, около 200 слов.")
	return b.String()
}

func fullReadingPrompt(profile domain.Profile, zodiacSign, question string, spread domain.Spread, cards []domain.DrawnCard) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Кверент: %s\n", profile.Name)
	if profile.BirthDate != "" {
		fmt.Fprintf(&b, "Дата рождения: %s\n", profile.BirthDate)
	}
	fmt.Fprintf(&b, "Знак зодиака: %s\n\n", zodiacSign)
	fmt.Fprintf(&b, "Расклад: %s\n", spread.Name)
	if spread.Description != "" {
		fmt.Fprintf(&b, "Смысл расклада: %s\n", spread.Description)
	}
	fmt.Fprintf(&b, "Вопрос: %q\n\nКарты по позициям:\n", question)
	for _, c := range cards {
		name := c.PositionName
		if name == "" {
			name = fmt.Sprintf("Позиция %d", c.Position)
		}
		fmt.Fprintf(&b, "%d. %s: %s (%s) — %s\n", c.Position, name, c.Card.Name, orientation(c.Reversed), c.Meaning())
	}
	b.WriteString(`
Составь цельное персональное толкование расклада объёмом 400-600 слов.
Обращайся к кверенту по имени, учитывай его знак зодиака,
раскрой значение каждой позиции и заверши общим советом.`)
	return b.String()
}

func arcanaName(a domain.Arcana) string {
	switch a {
	case domain.MajorArcana:
		return "Старший аркан"
	case domain.MinorArcana:
		return "Младший аркан"
	default:
		return string(a)
	}
}
