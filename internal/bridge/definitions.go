package bridge

import "encoding/json"

// Definition describes a tool for an agent: its name, what it does and
// the JSON schema of its arguments.
type Definition struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"`
}

// Definitions lists the tools in the order agents should see them. The
// updateInventory alias is accepted by Call but not advertised.
func Definitions() []Definition {
	return []Definition{
		{
			Name:        ToolUpdateInventoryStatus,
			Description: "Marks move-in inventory items (furniture, appliances) as acquired or missing.",
			Parameters: json.RawMessage(`{
  "type": "object",
  "properties": {
    "itemIds": {
      "type": "array",
      "items": {"type": "string", "description": "Item id, e.g. 'k-fridge'."},
      "description": "Ids of the items to update."
    },
    "status": {"type": "boolean", "description": "True if acquired, false if missing."}
  },
  "required": ["itemIds", "status"]
}`),
		},
		{
			Name:        ToolManageDailyGroceries,
			Description: "Adds items to the daily grocery list (food, cleaning supplies, hygiene).",
			Parameters: json.RawMessage(`{
  "type": "object",
  "properties": {
    "action": {"type": "string", "enum": ["add"], "description": "Operation on the grocery list."},
    "items": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "name": {"type": "string", "description": "Name of the grocery item."},
          "category": {"type": "string", "enum": ["fresh", "pantry", "cleaning", "hygiene", "other"]},
          "quantity": {"type": "number", "description": "Optional quantity, defaults to 1."},
          "unit": {"type": "string", "description": "Optional unit, defaults to pce."}
        },
        "required": ["name"]
      }
    }
  },
  "required": ["action", "items"]
}`),
		},
		{
			Name:        ToolGetInventoryAnalysis,
			Description: "Reads the inventory: budget, missing items and priority items.",
			Parameters: json.RawMessage(`{
  "type": "object",
  "properties": {
    "filter": {"type": "string", "enum": ["all", "missing", "acquired", "priority"], "description": "Items to analyze."},
    "category": {"type": "string", "description": "Optional category id."}
  },
  "required": ["filter"]
}`),
		},
		{
			Name:        ToolGetPlatinumData,
			Description: "Reads the administrative tasks and the moving boxes.",
			Parameters: json.RawMessage(`{
  "type": "object",
  "properties": {
    "type": {"type": "string", "enum": ["all", "admin", "moving"], "description": "Data to fetch."}
  },
  "required": ["type"]
}`),
		},
	}
}
