package internal

import (
	"fmt"
	"reflect"
	"sort"
	"testing"
	"time"

	"github.com/minaorangina/thegame/deck"
)

// FailureMessage reports a got/want mismatch
func FailureMessage(t *testing.T, got, want interface{}) {
	t.Helper()
	t.Errorf("\nGot: %s\nwant: %s", TypeToString(got), TypeToString(want))
}

// TypeToString returns the string representation of a non-string type
func TypeToString(obj interface{}) string {
	return fmt.Sprintf("%+v", obj)
}

// AssertNoError checks for the non-existence of an error
func AssertNoError(t *testing.T, err error) {
	t.Helper()

	if err != nil {
		t.Fatalf("Unexpected error: %s", err.Error())
	}
}

// AssertErrored checks for the existence of an error
func AssertErrored(t *testing.T, err error) {
	t.Helper()

	if err == nil {
		t.Fatal("Expected an error, but got nil")
	}
}

// AssertEqual checks that the values are equal
func AssertEqual(t *testing.T, got, want interface{}) {
	t.Helper()

	if got != want {
		FailureMessage(t, got, want)
	}
}

// AssertDeepEqual checks that the values are deeply equal
func AssertDeepEqual(t *testing.T, got, want interface{}) {
	t.Helper()

	if !reflect.DeepEqual(got, want) {
		FailureMessage(t, got, want)
	}
}

// AssertTrue checks that the value is true
func AssertTrue(t *testing.T, got bool) {
	t.Helper()

	if !got {
		t.Error("Expected to be true, but it wasn't")
	}
}

// AssertNotEmptyString checks the string is not the empty string
func AssertNotEmptyString(t *testing.T, got string) {
	t.Helper()

	if got == "" {
		t.Error("unexpected empty string")
	}
}

// AssertSameCards checks that got and want hold the same cards in any order
func AssertSameCards(t *testing.T, got, want []deck.Card) {
	t.Helper()

	if !reflect.DeepEqual(sortedCards(got), sortedCards(want)) {
		FailureMessage(t, sortedCards(got), sortedCards(want))
	}
}

// AssertUniqueCards checks that no card appears twice across all groups
func AssertUniqueCards(t *testing.T, groups ...[]deck.Card) {
	t.Helper()

	seen := map[deck.Card]struct{}{}
	for _, g := range groups {
		for _, c := range g {
			if _, ok := seen[c]; ok {
				t.Errorf("card %s appears more than once", c)
			}
			seen[c] = struct{}{}
		}
	}
}

// Within fails the test if assert does not complete in d
func Within(t *testing.T, d time.Duration, assert func()) {
	t.Helper()

	done := make(chan struct{}, 1)

	go func() {
		assert()
		done <- struct{}{}
	}()

	select {
	case <-time.After(d):
		t.Error("timed out")
	case <-done:
	}
}

func sortedCards(cards []deck.Card) []deck.Card {
	s := make([]deck.Card, len(cards))
	copy(s, cards)
	sort.Slice(s, func(i, j int) bool { return s[i] < s[j] })
	return s
}
