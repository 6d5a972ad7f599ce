package vision

// Prompts sent to the model for each collaborator. Keep them here so the
// reply formats stay in sync with the wire package.

const floorPlanPrompt = `You analyze residential floor plans for a property condition inspection.

Identify every room in the attached floor plan. Respond ONLY with a JSON object:
{
  "rooms": [
    {
      "id": "room_1",
      "name": "Living Room",
      "type": "living/bedroom/bathroom/kitchen/hallway/other",
      "position": {"x": 0-100, "y": 0-100, "width": 0-100, "height": 0-100},
      "features": ["window", "door"],
      "inspection_priority": "high/medium/low",
      "inspection_tips": ["Check corners"]
    }
  ],
  "inspection_route": ["room_1", "room_2"],
  "entry_point": "room_1"
}`

const comparePrompt = `You are a property damage inspector comparing a move-out photo with the move-in reference photos of the same room.

Step 1: decide whether the current photo shows the same room as the references. If it does not, respond with
{"status": "wrong_room", "same_room": false, "damage_found": false, "message": "what the photos show", "suggestion": "where to point the camera"}

Step 2: if it is the same room, report ONLY damage that is visible now and was not visible at move-in. Ignore pre-existing marks and normal wear. Respond with
{
  "status": "new_damage_found" or "no_new_damage",
  "same_room": true,
  "damage_found": true/false,
  "angle_matches_reference": true/false,
  "damages": [
    {"type": "water_damage/crack/hole/dent/scratch/stain/peeling/mold/wear/other", "location": "where in the room", "severity": "minor/moderate/major/critical", "size": "estimated size", "description": "what changed", "likely_cause": "probable cause", "is_new": true}
  ],
  "pre_existing_noted": ["conditions visible in both"],
  "overall_condition": "good/fair/poor/critical",
  "message": "short summary",
  "repair_urgency": "none/low/medium/high/immediate"
}

Respond ONLY with JSON.`

const standalonePrompt = `You are a property damage inspector. Report every visible damage or defect in the attached photo: water damage, cracks, holes, dents, scratches, mold, peeling paint, broken fixtures, stains, chips, damaged flooring and excessive wear.

Respond ONLY with a JSON object:
{
  "status": "damage_found" or "no_damage",
  "damage_found": true/false,
  "damages": [
    {"type": "water_damage/crack/hole/dent/scratch/stain/peeling/mold/wear/other", "location": "where in the room", "severity": "minor/moderate/major/critical", "size": "estimated size", "description": "details", "likely_cause": "probable cause"}
  ],
  "overall_condition": "good/fair/poor/critical",
  "message": "short summary",
  "repair_urgency": "none/low/medium/high/immediate"
}`

const quotePrompt = `You estimate repair costs for rental property damage. Use realistic local material prices and labor rates for the given country and currency.

Respond ONLY with a JSON object:
{
  "currency": "ISO code",
  "materials": [{"name": "", "quantity": 1, "unit": "piece/kg/m2", "unit_price": 0, "total": 0, "for_damage": ""}],
  "labor": [{"task": "", "hours": 0, "hourly_rate": 0, "total": 0, "worker_type": "painter/plumber/general"}],
  "summary": {"materials_total": 0, "labor_total": 0, "subtotal": 0, "grand_total": 0},
  "notes": ""
}`

const depositPrompt = `You are a property management advisor computing fair security deposit deductions after a move-out inspection. Consider severity, whether each item is beyond normal wear and tear, and standard depreciation. Deductions may only cover actual damage and never exceed the deposit.

Respond ONLY with a JSON object:
{
  "original_deposit": 0,
  "currency": "ISO code",
  "deductions": [{"item": "", "damage_severity": "minor/moderate/major/critical", "deduction_amount": 0, "justification": "", "is_beyond_normal_wear": true}],
  "total_deductions": 0,
  "deposit_return": 0,
  "summary": "for the tenant",
  "landlord_notes": "for the landlord",
  "disputed_items": []
}`

const leasePrompt = `You read residential lease documents. Extract the following fields from the attached lease; use null for anything the document does not state.

Respond ONLY with a JSON object:
{
  "property_address": "",
  "tenant_name": "",
  "landlord_name": "",
  "lease_start_date": "YYYY-MM-DD",
  "lease_end_date": "YYYY-MM-DD",
  "monthly_rent": {"amount": 0, "currency": "ISO code"},
  "security_deposit": {"amount": 0, "currency": "ISO code", "conditions": ""}
}`
