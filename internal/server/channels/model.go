// Package channels implements the channel membership store: channel CRUD
// and participant/mod set management. An account is never in both sets at
// once; every mutation re-applies that invariant before persisting.
package channels

import "slices"

// Channel is a named group conversation. Participants and Mods hold
// usernames and are kept disjoint.
type Channel struct {
	ID           int64    `json:"id"`
	Name         string   `json:"name"`
	Participants []string `json:"participants"`
	Mods         []string `json:"mods"`
}

func (c *Channel) HasParticipant(username string) bool {
	return slices.Contains(c.Participants, username)
}

func (c *Channel) HasMod(username string) bool {
	return slices.Contains(c.Mods, username)
}

// addParticipant and addMod keep set semantics; the mod/participant
// exclusivity is enforced separately by dedupeMembership.
func (c *Channel) addParticipant(username string) {
	if !c.HasParticipant(username) {
		c.Participants = append(c.Participants, username)
	}
}

func (c *Channel) addMod(username string) {
	if !c.HasMod(username) {
		c.Mods = append(c.Mods, username)
	}
}

func (c *Channel) removeParticipant(username string) {
	c.Participants = slices.DeleteFunc(c.Participants, func(u string) bool { return u == username })
}

func (c *Channel) removeMod(username string) {
	c.Mods = slices.DeleteFunc(c.Mods, func(u string) bool { return u == username })
}

// dedupeMembership drops every mod from the participant list, restoring the
// invariant that the two sets are disjoint.
func (c *Channel) dedupeMembership() {
	for _, mod := range c.Mods {
		c.removeParticipant(mod)
	}
}
