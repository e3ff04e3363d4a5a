package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildEventResponse(t *testing.T) {
	event := Event{ID: 1, EventName: "Festival Build"}
	invited := User{ID: 10, Name: "Invited"}
	applied := User{ID: 11, Name: "Applied"}
	rejected := User{ID: 12, Name: "Rejected"}
	approved := User{ID: 13, Name: "Approved"}

	assignments := []EventAssignment{
		{EventID: 1, ContractorID: invited.ID, Status: AssignmentInvited, Contractor: invited},
		{EventID: 1, ContractorID: applied.ID, Status: AssignmentApplied, Contractor: applied},
		{EventID: 1, ContractorID: rejected.ID, Status: AssignmentRejected, Contractor: rejected},
		{EventID: 1, ContractorID: approved.ID, Status: AssignmentApproved, Contractor: approved},
	}

	resp := BuildEventResponse(event, assignments)

	assignedIDs := make([]uint, 0, len(resp.AssignedContractors))
	for _, u := range resp.AssignedContractors {
		assignedIDs = append(assignedIDs, u.ID)
	}
	assert.ElementsMatch(t, []uint{invited.ID, applied.ID}, assignedIDs)
	assert.Equal(t, []uint{applied.ID, approved.ID}, resp.AcceptedContractors)
	assert.Equal(t, []uint{rejected.ID}, resp.RejectedContractors)
	assert.Len(t, resp.ApprovedContractors, 1)
	assert.Equal(t, approved.ID, resp.ApprovedContractors[0].ID)
}

func TestBuildEventResponse_BucketsAreExclusive(t *testing.T) {
	event := Event{ID: 2, EventName: "Arena Strike"}
	contractor := User{ID: 20, Name: "Crew"}

	// One status row per contractor means an id can only land in the
	// buckets its single status maps to
	for _, status := range []string{AssignmentApplied, AssignmentRejected} {
		resp := BuildEventResponse(event, []EventAssignment{
			{EventID: 2, ContractorID: contractor.ID, Status: status, Contractor: contractor},
		})

		inAccepted := false
		for _, id := range resp.AcceptedContractors {
			if id == contractor.ID {
				inAccepted = true
			}
		}
		inRejected := false
		for _, id := range resp.RejectedContractors {
			if id == contractor.ID {
				inRejected = true
			}
		}
		assert.NotEqual(t, inAccepted, inRejected, "status %s must place the id in exactly one bucket", status)
	}
}

func TestBuildEventResponse_EmptyBuckets(t *testing.T) {
	resp := BuildEventResponse(Event{ID: 3}, nil)

	assert.NotNil(t, resp.AssignedContractors)
	assert.NotNil(t, resp.AcceptedContractors)
	assert.NotNil(t, resp.RejectedContractors)
	assert.NotNil(t, resp.ApprovedContractors)
	assert.Empty(t, resp.AssignedContractors)
}

func TestBuildEventResponse_DeniedIsHidden(t *testing.T) {
	contractor := User{ID: 30, Name: "Denied Crew"}
	resp := BuildEventResponse(Event{ID: 4}, []EventAssignment{
		{EventID: 4, ContractorID: contractor.ID, Status: AssignmentDenied, Contractor: contractor},
	})

	assert.Empty(t, resp.AssignedContractors)
	assert.Empty(t, resp.AcceptedContractors)
	assert.Empty(t, resp.RejectedContractors)
	assert.Empty(t, resp.ApprovedContractors)
}

func TestEventTableNames(t *testing.T) {
	assert.Equal(t, "events", Event{}.TableName())
	assert.Equal(t, "event_assignments", EventAssignment{}.TableName())
}
