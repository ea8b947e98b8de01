package core

// Health classifies how much of the essential and personal budget has been
// spent.
type Health string

const (
	HealthExcellent Health = "excellent"
	HealthGood      Health = "good"
	HealthWarning   Health = "warning"
	HealthDanger    Health = "danger"
)

// ClassifyHealth maps a spent/budget percentage to a Health level.
// Boundaries are inclusive: exactly 70 is excellent, exactly 100 is warning.
func ClassifyHealth(percent float64) Health {
	switch {
	case percent <= 70:
		return HealthExcellent
	case percent <= 90:
		return HealthGood
	case percent <= 100:
		return HealthWarning
	default:
		return HealthDanger
	}
}

// CardStatus classifies a single card's utilization.
type CardStatus string

const (
	CardOK      CardStatus = "ok"
	CardWarning CardStatus = "warning"
	CardDanger  CardStatus = "danger"
)

func ClassifyCardUsage(percent float64) CardStatus {
	switch {
	case percent >= 90:
		return CardDanger
	case percent >= 70:
		return CardWarning
	default:
		return CardOK
	}
}
