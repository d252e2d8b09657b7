package lcu

// Raw LCU wire shapes. These are documentation, not decode targets —
// internal/lcuevents unmarshals the payloads into its own json-tagged
// structs, where unknown fields are ignored and missing ones stay at
// their zero value, since both are the normal case for an undocumented
// API.
//
// GET /lol-gameflow/v1/gameflow-phase
//   -> a bare JSON string, one of:
//      "None" | "Lobby" | "Matchmaking" | "ReadyCheck" | "ChampSelect" |
//      "InProgress" | "WaitingForStats" | "PreEndOfGame" | "EndOfGame"
//   Anything this agent doesn't track collapses to PhaseNone.
//
// GET /lol-champ-select/v1/session
//   {
//     "gameId": number,
//     "localPlayerCellId": number,
//     "myTeam": [ { "cellId", "championId", "summonerId", "assignedPosition", "championPickIntent" } ],
//     "theirTeam": [ { "cellId", "championId" } ],
//     "bans": { "myTeamBans": [championId], "theirTeamBans": [championId] },
//     "actions": [ [ { "id", "actorCellId", "championId", "type", "completed", "isInProgress" } ] ]
//   }
//   A 404 here means "not currently in champion select" (§7 NotInPhase).
//
// WebSocket frames, after sending [5, "OnJsonApiEvent"] on open:
//   [8, "OnJsonApiEvent", { "uri": string, "eventType": "Create"|"Update"|"Delete", "data": any }]
