// Package core defines the shared vocabulary of the loreweave engine: turn
// messages, composite thread identity, agent definitions, notification
// events, and the collaborator interfaces (execution, checkpointing,
// persistence) consumed by the routing and orchestration layers.
//
// Concrete collaborator implementations live in sibling packages (exec,
// checkpoint, registry); core holds only the contracts so the orchestration
// layers stay free of implementation dependencies.
package core
