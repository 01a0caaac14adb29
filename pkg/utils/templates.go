package utils

// Message templates for passenger and agent notifications.

const MSG_BOOKING_CONFIRMED = `Your assistance booking is confirmed.
Reference: %s
Operator: %s
Departure: %s at %s
Your agent: %s (%s)`

const MSG_BOOKING_REMINDER = `Reminder: your assisted departure is tomorrow.
Reference: %s
Departure: %s at %s
Your agent %s will meet you at the reception point.`

const MSG_TRANSFER_AGENT_PREPARE = `Prepare transfer assistance at %s.
Passenger %s arrives at %s and must reach the %s departure by %s.`

const MSG_TRANSFER_AGENT_ARRIVING = `Passenger %s is arriving at %s around %s.
Please take over the assistance handover for the %s departure at %s.`

const MSG_TRANSFER_PASSENGER = `Your transfer at %s is organized.
On arrival, %s will meet you. For your connection, %s takes over.
You have %.0f minutes, %.0f are required.`

const MSG_DELAY = `Your segment %s is delayed by %d minutes.
New arrival time: %s.`

const MSG_CONNECTION_LOST = `Your connection at %s can no longer be made (%.0f minutes available, %.0f required).
We are searching for alternative routes and will contact you shortly.`

const MSG_CONNECTION_AT_RISK = `Your connection at %s is tight (%.0f minutes available, %.0f required).
Agents on both sides have been alerted and will expedite your transfer.`

const MSG_DELAY_ABSORBED = `Despite the delay, your connection at %s is safe (%.0f minutes available, %.0f required). No action needed.`
