package handlers

import (
	"math/rand/v2"
	"net/http"
)

type Quote struct {
	Text   string `json:"text"`
	Author string `json:"author"`
}

var wellnessQuotes = []Quote{
	{Text: "Take care of your body. It's the only place you have to live.", Author: "Jim Rohn"},
	{Text: "A calm mind brings inner strength and self-confidence.", Author: "Dalai Lama"},
	{Text: "The greatest wealth is health.", Author: "Virgil"},
}

func RandomQuote(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, wellnessQuotes[rand.IntN(len(wellnessQuotes))])
}
