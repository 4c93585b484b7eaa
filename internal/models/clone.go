package models

// Clone returns a deep copy of the record so callers can read it without
// holding the store's lock.
func (m *UserMemory) Clone() *UserMemory {
	if m == nil {
		return nil
	}
	out := *m
	out.Preferences = m.Preferences.clone()
	out.VisitedLocations = append([]string(nil), m.VisitedLocations...)
	out.VisitHistory = append([]VisitRecord(nil), m.VisitHistory...)
	out.CurrentTrip = m.CurrentTrip.Clone()
	if m.TripHistory != nil {
		out.TripHistory = make([]TripRecord, len(m.TripHistory))
		for i, tr := range m.TripHistory {
			out.TripHistory[i] = tr
			out.TripHistory[i].StopsVisited = append([]string(nil), tr.StopsVisited...)
		}
	}
	if m.PrivacySettings != nil {
		ps := *m.PrivacySettings
		if m.PrivacySettings.ActivatedAt != nil {
			at := *m.PrivacySettings.ActivatedAt
			ps.ActivatedAt = &at
		}
		out.PrivacySettings = &ps
	}
	return &out
}

func (p Preferences) clone() Preferences {
	out := p
	out.Interests = append([]string(nil), p.Interests...)
	out.RoutePreferences = append([]RoutePreference(nil), p.RoutePreferences...)
	return out
}

// Clone returns a deep copy of the trip.
func (t *Trip) Clone() *Trip {
	if t == nil {
		return nil
	}
	out := *t
	out.Constraints = t.Constraints.clone()
	out.TemporaryPreferences = append([]string(nil), t.TemporaryPreferences...)
	out.PlannedStops = append([]string(nil), t.PlannedStops...)
	out.CompletedStops = append([]string(nil), t.CompletedStops...)
	return &out
}

func (c TripConstraints) clone() TripConstraints {
	out := c
	if c.MustReturn != nil {
		v := *c.MustReturn
		out.MustReturn = &v
	}
	if c.AvoidHighways != nil {
		v := *c.AvoidHighways
		out.AvoidHighways = &v
	}
	if c.MaxDistance != nil {
		v := *c.MaxDistance
		out.MaxDistance = &v
	}
	return out
}
