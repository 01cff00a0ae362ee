package engine

// Score deltas for the fixed ruleset
const (
	ScoreDraw                = 2
	ScoreRecycle             = -20
	ScoreFoundationToTableau = -5
	ScoreWasteToFoundation   = 15
	ScoreTableauToFoundation = 5
	ScoreWasteToTableau      = 10
	ScoreUndo                = -15
)

// drawFromStock moves the stock top to the waste, or recycles the waste into the
// stock when the stock is exhausted. With both empty it changes nothing.
func (gs *GameState) drawFromStock(s Shuffler) MoveOutcome {
	if card, err := gs.Stock.Pop(); err == nil {
		card.FaceUp = true
		gs.Waste.Push(card)
		gs.StockCursor++
		gs.Moves++
		gs.addScore(ScoreDraw)
		return applied()
	}

	if gs.Waste.IsEmpty() {
		return MoveOutcome{}
	}

	cards := gs.Waste.take(gs.Waste.Len())
	for i := range cards {
		cards[i].FaceUp = false
	}
	shuffleCards(cards, s)
	for _, c := range cards {
		gs.Stock.Push(c)
	}

	gs.StockCursor = 0
	gs.Recycles++
	gs.Moves++
	gs.addScore(ScoreRecycle)
	return applied()
}

// executeMove validates and applies one move. A rejected move leaves gs untouched.
func (gs *GameState) executeMove(src, dst Location, count int) MoveOutcome {
	if !src.Valid() {
		return rejected(InvalidSource)
	}
	if !dst.Valid() || dst.IsWaste() || src == dst {
		return rejected(InvalidDestination)
	}
	if count < 1 {
		return rejected(IllegalCardPlacement)
	}

	switch {
	case src.IsFoundation() && dst.IsTableau():
		return gs.moveFoundationToTableau(src.Suit(), tableauIndex(dst))
	case dst.IsFoundation():
		return gs.moveToFoundation(src, dst.Suit(), count)
	case src.IsWaste() && dst.IsTableau():
		return gs.moveWasteToTableau(tableauIndex(dst), count)
	case src.IsTableau() && dst.IsTableau():
		return gs.moveTableauToTableau(tableauIndex(src), tableauIndex(dst), count)
	}
	return rejected(InvalidSource)
}

// moveFoundationToTableau moves the foundation's top card; count is ignored
func (gs *GameState) moveFoundationToTableau(suit Suit, to int) MoveOutcome {
	foundation := gs.Foundation(suit)
	card, ok := foundation.Top()
	if !ok {
		return rejected(EmptyPile)
	}
	if !gs.Tableau[to].CanAccept(card) {
		return rejected(IllegalCardPlacement)
	}

	gs.Tableau[to].Push(gs.mustPop(&foundation.Pile))
	gs.Moves++
	gs.addScore(ScoreFoundationToTableau)
	return applied()
}

func (gs *GameState) moveToFoundation(src Location, suit Suit, count int) MoveOutcome {
	if count != 1 {
		return rejected(IllegalCardPlacement)
	}

	var from *Pile
	switch src.Kind() {
	case LocationWaste:
		from = &gs.Waste
	case LocationTableau:
		column := &gs.Tableau[tableauIndex(src)]
		if !column.IsEmpty() && column.FaceUpCount() == 0 {
			return rejected(InsufficientFaceUpRun)
		}
		from = &column.Pile
	case LocationFoundation:
		from = &gs.Foundation(src.Suit()).Pile
	default:
		return rejected(InvalidSource)
	}

	card, ok := from.Top()
	if !ok {
		return rejected(EmptyPile)
	}
	foundation := gs.Foundation(suit)
	if !foundation.CanAccept(card) {
		return rejected(IllegalCardPlacement)
	}

	foundation.Push(gs.mustPop(from))
	gs.Moves++
	switch src.Kind() {
	case LocationWaste:
		gs.addScore(ScoreWasteToFoundation)
	case LocationTableau:
		gs.addScore(ScoreTableauToFoundation)
		gs.Tableau[tableauIndex(src)].flipTop()
	}
	return applied()
}

func (gs *GameState) moveWasteToTableau(to, count int) MoveOutcome {
	if count != 1 {
		return rejected(IllegalCardPlacement)
	}
	card, ok := gs.Waste.Top()
	if !ok {
		return rejected(EmptyPile)
	}
	if !gs.Tableau[to].CanAccept(card) {
		return rejected(IllegalCardPlacement)
	}

	gs.Tableau[to].Push(gs.mustPop(&gs.Waste))
	gs.Moves++
	gs.addScore(ScoreWasteToTableau)
	return applied()
}

func (gs *GameState) moveTableauToTableau(from, to, count int) MoveOutcome {
	source := &gs.Tableau[from]
	dest := &gs.Tableau[to]

	if source.IsEmpty() {
		return rejected(EmptyPile)
	}
	if count > source.FaceUpCount() {
		return rejected(InsufficientFaceUpRun)
	}

	run := source.topRun(count)
	if !dest.CanAcceptRun(run) {
		return rejected(IllegalCardPlacement)
	}

	for _, c := range source.take(count) {
		dest.Push(c)
	}
	source.flipTop()
	gs.Moves++
	return applied()
}

// mustPop pops a pile that the caller has already checked is non-empty
func (gs *GameState) mustPop(p *Pile) Card {
	c, err := p.Pop()
	if err != nil {
		panic("engine: " + err.Error())
	}
	return c
}
