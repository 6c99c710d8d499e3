package models

import "math"

// RoundMoney rounds an amount to two decimal places
func RoundMoney(amount float64) float64 {
	return math.Round(amount*100) / 100
}
